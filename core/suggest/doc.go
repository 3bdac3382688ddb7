// Package suggest turns an empire description into agent specifications:
// it renders the master prompt, sends it to the model through a middleware
// chain, and runs the reply through the recovery pipeline.
//
// Every failure is a [*Error] whose Kind tells the HTTP layer how to answer.
package suggest
