// Package server implements the purple-ghost control socket.
//
// The daemon listens on a Unix domain socket for JSON-encoded commands from
// the CLI. Each connection carries a single request-response exchange: the
// client sends a newline-delimited JSON envelope, the server dispatches the
// command to its [Controller], and writes the result back before closing the
// connection.
//
// Supported commands are status, reload and shutdown. [Call] is the client
// side of the exchange.
//
// Example usage:
//
//	srv, err := server.New(server.Config{Controller: ctrl})
//	if err != nil {
//	    return err
//	}
//
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop()
//
//	srv.Wait()
package server
