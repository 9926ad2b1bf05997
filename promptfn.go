// Package promptfn turns declared function signatures into typed, callable
// LLM prompt functions.
//
// A prompt function is defined once from a name, a parameter list, and an
// ordered list of role-tagged message templates. Calling it binds the call
// arguments against the declared parameters, renders the templates, and sends
// the resulting conversation to a backend together with the set of output
// types the declared return type permits. The backend's reply content comes
// back as the declared Go type.
//
// # Basic Usage
//
//	quote, err := promptfn.Define[Quote]("get_movie_quote",
//	    promptfn.WithParams(promptfn.RequiredParam("movie")),
//	    promptfn.WithMessages(
//	        promptfn.SystemMessage("You are a movie buff."),
//	        promptfn.UserMessage("What is your favorite quote from {movie}?"),
//	    ),
//	)
//	if err != nil { ... }
//	result, err := quote.Call(ctx, "Iron Man")
//
// # Template Syntax
//
// Message templates use {name} placeholders that must match declared
// parameter names. Literal braces are escaped by doubling:
//
//	promptfn.UserMessage("Answer in JSON: {{\"movie\": \"{movie}\"}}")
//
// renders with a single literal brace on each side. Use EscapeBraces to
// prepare untrusted text for inclusion in a template.
//
// # Output Types
//
// The declared return type R is resolved once at definition time into the
// set of output variants the backend is told to produce. Union returns are
// declared explicitly:
//
//	promptfn.Define[any]("answer",
//	    promptfn.WithOutputTypes(promptfn.StringType(), promptfn.FunctionCallType()),
//	    ...)
//
// # Backends and Retries
//
// Backends implement the Complete method and are either configured per
// function via WithModel or resolved on every call from a Registry (the
// package-level DefaultRegistry unless WithRegistry is given). WithMaxRetries
// wraps the backend so that replies which fail output validation are retried
// with corrective context appended to the conversation.
//
// # Execution Modes
//
// Define produces a blocking function; DefineAsync produces one whose Start
// method returns a Future. Both variants share identical binding, rendering,
// retry, and error semantics.
package promptfn
