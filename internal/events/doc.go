// Package events decouples the services that request background jobs from
// the job runner that executes them.
//
// Services emit a JobRequestEvent through an EventEmitter; a handler
// registered with the emitter turns the event into a job and submits it.
package events
