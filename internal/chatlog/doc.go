// Package chatlog writes per-channel chat logs.
//
// Every channel gets one append-only file, "<name>.txt" under the log
// directory, where name is the channel without its leading "#". Each line is
// a self-contained JSON object (a [Record]) carrying the IRC command, the
// fields relevant to that command, the message tags and a local timestamp.
// When a [Manager] opens its files it first appends an OPEN record stamped
// with the open time, so restarts and reloads are visible in the log.
//
// Example usage:
//
//	logs, err := chatlog.Open("logs", []string{"#forsen"}, time.Now())
//	if err != nil {
//	    return err
//	}
//	defer logs.Close()
//
//	err = logs.Write("#forsen", chatlog.Record{
//	    Command: "PRIVMSG",
//	    Sender:  "someone",
//	    Message: "hello",
//	})
package chatlog
