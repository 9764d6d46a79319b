package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	var login bool

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Open a raw interactive protocol session",
		Long: `session connects to the server and bridges stdin/stdout to the wire.

Each stdin line is sent verbatim; each server line is printed as it arrives,
including lobby broadcasts and the 60 Hz match state stream. With --login the
configured credentials are used to authenticate first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var client *Client
			var err error
			if login {
				client, err = connectAndLogin()
			} else {
				client, err = connect()
			}
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			// Interactive streaming; drop the per-operation deadlines.
			_ = client.conn.SetDeadline(time.Time{})

			// Reader side: print everything until the server hangs up.
			// The client's reader is reused so lines buffered during login
			// are not lost.
			done := make(chan struct{})
			go func() {
				defer close(done)
				r := client.r
				for {
					line, err := r.ReadString('\n')
					if err != nil {
						return
					}
					fmt.Print(line)
				}
			}()

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				if _, err := client.conn.Write([]byte(scanner.Text() + "\n")); err != nil {
					break
				}
				select {
				case <-done:
					return nil
				default:
				}
			}
			if err := scanner.Err(); err != nil && err != io.EOF {
				return err
			}

			_ = client.conn.Close()
			<-done
			return nil
		},
	}

	cmd.Flags().BoolVar(&login, "login", false, "Authenticate with the configured credentials first")

	return cmd
}
