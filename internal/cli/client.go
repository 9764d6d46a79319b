package cli

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"
)

// Client is a line-protocol client for the duel server. It is not safe for
// concurrent use; the session command splits reads and writes itself.
type Client struct {
	conn    net.Conn
	r       *bufio.Reader
	timeout time.Duration
}

// Dial connects to the duel server
func Dial(addr string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return &Client{
		conn:    conn,
		r:       bufio.NewReader(conn),
		timeout: timeout,
	}, nil
}

// Close tears the connection down
func (c *Client) Close() error {
	return c.conn.Close()
}

// Send writes one protocol line
func (c *Client) Send(line string) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return err
	}
	_, err := c.conn.Write([]byte(line + "\n"))
	return err
}

// Recv reads one protocol line
func (c *Client) Recv() (string, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return "", err
	}
	line, err := c.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// RecvMatching reads lines until one starts with any of the given prefixes,
// discarding unrelated lobby broadcasts. An ERROR line is always returned.
func (c *Client) RecvMatching(prefixes ...string) (string, error) {
	for i := 0; i < 100; i++ {
		line, err := c.Recv()
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(line, "ERROR:") {
			return line, nil
		}
		for _, prefix := range prefixes {
			if strings.HasPrefix(line, prefix) {
				return line, nil
			}
		}
	}
	return "", fmt.Errorf("no matching reply for %s", strings.Join(prefixes, ", "))
}

// Register creates an account
func (c *Client) Register(username, email, password string) error {
	if err := c.Send(fmt.Sprintf("REGISTER:%s:%s:%s", username, email, password)); err != nil {
		return err
	}
	reply, err := c.RecvMatching("Registration successful")
	if err != nil {
		return err
	}
	if reply != "Registration successful" {
		return fmt.Errorf("registration rejected: %s", strings.TrimPrefix(reply, "ERROR:"))
	}
	return nil
}

// Login authenticates the session
func (c *Client) Login(username, password string) error {
	if err := c.Send(fmt.Sprintf("LOGIN:%s:%s", username, password)); err != nil {
		return err
	}
	reply, err := c.RecvMatching("Login successful")
	if err != nil {
		return err
	}
	if reply != "Login successful" {
		return fmt.Errorf("login rejected: %s", strings.TrimPrefix(reply, "ERROR:"))
	}
	return nil
}

// Logout ends the session; the server closes the connection afterwards
func (c *Client) Logout() error {
	if err := c.Send("LOGOUT"); err != nil {
		return err
	}
	_, err := c.RecvMatching("LOGOUT_OK")
	return err
}

// List fetches the online player list
func (c *Client) List() ([]string, error) {
	if err := c.Send("LIST"); err != nil {
		return nil, err
	}
	reply, err := c.RecvMatching("UPDATE_LIST:")
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(reply, "ERROR:") {
		return nil, fmt.Errorf("list rejected: %s", strings.TrimPrefix(reply, "ERROR:"))
	}
	raw := strings.TrimPrefix(reply, "UPDATE_LIST:")
	if raw == "" {
		return nil, nil
	}
	return strings.Split(raw, ","), nil
}

// Query runs one of the leaderboard/history queries (1, 2 or 3)
func (c *Client) Query(n int) (string, error) {
	if err := c.Send(fmt.Sprintf("QUERY%d", n)); err != nil {
		return "", err
	}
	prefix := fmt.Sprintf("QUERY%d_RESULT:", n)
	reply, err := c.RecvMatching(prefix)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(reply, "ERROR:") {
		return "", fmt.Errorf("query rejected: %s", strings.TrimPrefix(reply, "ERROR:"))
	}
	return strings.TrimPrefix(reply, prefix), nil
}

// DeleteAccount removes the logged-in account and ends the session
func (c *Client) DeleteAccount() error {
	if err := c.Send("DELETE_ME"); err != nil {
		return err
	}
	reply, err := c.RecvMatching("LOGOUT_OK")
	if err != nil {
		return err
	}
	if strings.HasPrefix(reply, "ERROR:") {
		return fmt.Errorf("deletion rejected: %s", strings.TrimPrefix(reply, "ERROR:"))
	}
	return nil
}
