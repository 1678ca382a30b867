package main

import (
	"fmt"
	"io"
	"time"

	"github.com/OCAP2/spotting/internal/dispatcher"
)

func dispatcherEvent(command string, args ...string) dispatcher.Event {
	return dispatcher.Event{Command: command, Args: args, Timestamp: time.Now()}
}

// demoScript is a short two-team engagement over one armoured target.
var demoScript = []dispatcher.Event{
	dispatcherEvent(":SESSION:START:", `"Demo Session"`, `"VR"`, "[false,false,false]"),
	dispatcherEvent(":TARGET:REGISTER:", "42", "armor", "EAST"),
	dispatcherEvent(":SPOT:", "7", "WEST", "true", "42", "tank", "EAST", "[1200,3400,0]", "3"),
	dispatcherEvent(":SPOT:", "8", "GUER", "false", "42", "tank", "EAST", "[1200,3400,0]", "2"),
	dispatcherEvent(":LASER:TARGET:", "42", "WEST"),
	dispatcherEvent(":LASER:TARGET:", "42", "GUER"),
	dispatcherEvent(":TARGET:POSITION:", "42", "[1210,3405,0]"),
	dispatcherEvent(":STATUS:"),
}

// runDemo plays demoScript, waits for both observations to expire and ends the session.
func runDemo(d *dispatcher.Dispatcher, out io.Writer) error {
	for _, e := range demoScript {
		result, err := d.Dispatch(e)
		if err != nil {
			return fmt.Errorf("%s: %w", e.Command, err)
		}
		fmt.Fprintf(out, "%-20s %v\n", e.Command, result)
	}

	time.Sleep(3500 * time.Millisecond)

	for _, e := range []dispatcher.Event{
		dispatcherEvent(":LASER:TARGET:", "42", "WEST"),
		dispatcherEvent(":STATUS:"),
		dispatcherEvent(":SESSION:END:"),
	} {
		result, err := d.Dispatch(e)
		if err != nil {
			return fmt.Errorf("%s: %w", e.Command, err)
		}
		fmt.Fprintf(out, "%-20s %v\n", e.Command, result)
	}
	return nil
}
