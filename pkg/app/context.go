// Package app holds the application-layer plumbing shared by commands:
// run context, output preferences and the common error envelope.
package app

import "context"

// Context holds application-wide configuration and state for one command
// invocation.
type Context struct {
	context.Context

	// Output preferences
	OutputFormat string
	Verbose      bool
	Quiet        bool

	// Progress reporting
	ProgressCallback func(message string)
}

// NewContext creates a new application context.
func NewContext() *Context {
	return &Context{Context: context.Background()}
}

// WithCancel creates a cancellable copy of the context.
func (c *Context) WithCancel() (*Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(c.Context)
	newCtx := *c
	newCtx.Context = ctx
	return &newCtx, cancel
}

// Progress reports progress if a callback is set.
func (c *Context) Progress(message string) {
	if c.ProgressCallback != nil {
		c.ProgressCallback(message)
	}
}

// Log outputs a message based on verbosity settings.
func (c *Context) Log(message string) {
	if !c.Quiet && c.Verbose {
		println(message)
	}
}

// Error outputs an error message unless quiet.
func (c *Context) Error(message string) {
	if !c.Quiet {
		println("Error:", message)
	}
}
