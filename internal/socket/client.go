package socket

import (
	"bufio"
	"net"
)

const (
	outBuffer   = 64
	maxLineSize = 64 * 1024
)

type client struct {
	conn net.Conn
	out  chan string
	done chan struct{}
}

func newClient(conn net.Conn) *client {
	return &client{
		conn: conn,
		out:  make(chan string, outBuffer),
		done: make(chan struct{}),
	}
}

// send queues a line without blocking and reports whether it was queued.
func (c *client) send(line string) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.out <- line:
		return true
	default:
		return false
	}
}

// reply queues a response, waiting for room unless the connection is gone.
func (c *client) reply(line string) {
	select {
	case c.out <- line:
	case <-c.done:
	}
}

func (c *client) readLoop(handle func(line string) string) {
	defer close(c.done)
	defer c.conn.Close()

	sc := bufio.NewScanner(c.conn)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)
	for sc.Scan() {
		if resp := handle(sc.Text()); resp != "" {
			c.reply(resp)
		}
	}
}

func (c *client) writeLoop() {
	w := bufio.NewWriter(c.conn)
	for {
		select {
		case line := <-c.out:
			w.WriteString(line)
			w.WriteByte('\n')
			// Flush once the backlog is written.
			if len(c.out) > 0 {
				continue
			}
			if err := w.Flush(); err != nil {
				c.conn.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}
