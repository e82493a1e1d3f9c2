// Package gemini suggests subtasks for a task using Google's Gemini API.
//
// The Suggester renders a prompt from the task's title and description,
// asks the model for a JSON list of subtask titles and validates the
// answer. Transient API failures are retried with exponential backoff;
// blocked or malformed responses are not.
package gemini
