/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/lumengine/lumen/engine"
	"github.com/lumengine/lumen/engine/core"
	"github.com/lumengine/lumen/testbed"
)

func main() {
	tb := testbed.NewTestGame()

	engine, err := engine.New(tb)
	if err != nil {
		panic(err)
	}

	if err := engine.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// Queue a quit event instead of shutting down directly; the frame
	// loop drains the queue and tears itself down between frames.
	go func() {
		<-sigCh
		core.EventEnqueue(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	}()

	// run engine
	if err := engine.Run(); err != nil {
		panic(err)
	}
}
