// Package serialstream exposes a serial link as a single asynchronous
// stream of byte chunks, hiding whether the platform reads by blocking
// syscall or by push callback.
//
// Two backends implement the same contract. Ports with a blocking read
// capability (Driver) get a dedicated worker goroutine that waits for
// readability, performs one bounded read, and forwards the result over a
// channel. Ports that already deliver asynchronously (PushSource) are
// bridged without a worker, with an optional inactivity timeout and
// device-detach translation. Callers see one Reader either way.
//
// Features:
//   - One output stream of Events; errors delivered in-band, never thrown
//   - Listen / pause / resume / close lifecycle with idempotent close
//   - No stale delivery: nothing produced before a pause arrives after resume
//   - Synchronous Read(n, timeout) accessor with a 1ms poll loop
//   - Raw syscall driver for Linux, go.bug.st/serial driver elsewhere
//   - PTY-based tests for reliability
//
// Example usage:
//
//	r, err := serialstream.Open(serialstream.Config{
//	    Device:   "/dev/ttyUSB0",
//	    BaudRate: 115200,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	for ev := range r.Events() {
//	    if ev.Err != nil {
//	        log.Println("read error:", ev.Err)
//	        continue
//	    }
//	    fmt.Printf("chunk: %q\n", ev.Data)
//	}
package serialstream
