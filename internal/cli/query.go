package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// queryNumbers maps the user-facing query names onto the wire's QUERYn
// commands
var queryNumbers = map[string]int{
	"score":   1,
	"matches": 2,
	"kills":   3,
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List players currently online",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connectAndLogin()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			players, err := client.List()
			if err != nil {
				return err
			}

			if len(players) == 0 {
				fmt.Println("Nobody online")
			}
			for _, p := range players {
				fmt.Println(p)
			}

			return client.Logout()
		},
	}
}

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "query {score|matches|kills}",
		Short:     "Query the leaderboards or recent match history",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"score", "matches", "kills"},
		RunE: func(cmd *cobra.Command, args []string) error {
			n, ok := queryNumbers[args[0]]
			if !ok {
				return fmt.Errorf("unknown query %q", args[0])
			}

			client, err := connectAndLogin()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			result, err := client.Query(n)
			if err != nil {
				return err
			}
			fmt.Println(result)

			return client.Logout()
		},
	}
}
