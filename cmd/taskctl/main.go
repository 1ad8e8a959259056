package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lacewing-labs/taskd/internal/adapters/rpc"
	"github.com/lacewing-labs/taskd/internal/cliconfig"
	"github.com/lacewing-labs/taskd/internal/domain"
)

// roundTrip dials the admin socket, writes req as a single line of JSON,
// and reads back a single line Response, per SPEC_FULL.md §4.12 (one
// request/response per connection).
func roundTrip(socketPath string, req rpc.Request) (rpc.Response, error) {
	var resp rpc.Response

	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		return resp, fmt.Errorf("dial %s: %w", socketPath, err)
	}
	defer conn.Close()

	data, err := json.Marshal(req)
	if err != nil {
		return resp, err
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return resp, fmt.Errorf("write request: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return resp, fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(line, &resp); err != nil {
		return resp, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}

func main() {
	var socketPath string

	root := &cobra.Command{
		Use:   "taskctl",
		Short: "Control a running taskd daemon over its admin socket",
	}
	root.PersistentFlags().StringVar(&socketPath, "socket", "", "path to taskd's admin socket (default: <state-dir>/rpc.sock)")
	root.PersistentFlags().String("state-dir", cliconfig.DefaultStateDir, "state directory, used to derive --socket when it is not set")

	resolveSocket := func(cmd *cobra.Command) string {
		if socketPath != "" {
			return socketPath
		}
		stateDir, _ := cmd.Flags().GetString("state-dir")
		return domain.NewDomain(stateDir, nil).SocketPath()
	}

	printResult := func(resp rpc.Response, err error) error {
		if err != nil {
			return err
		}
		if !resp.OK {
			return fmt.Errorf("%s", resp.Error)
		}
		return nil
	}

	loadCmd := &cobra.Command{
		Use:   "load <path>",
		Short: "Load a single manifest file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrideDisabled, _ := cmd.Flags().GetBool("override-disabled")
			forceLoad, _ := cmd.Flags().GetBool("force")
			resp, err := roundTrip(resolveSocket(cmd), rpc.Request{
				Op: "load", Path: args[0],
				OverrideDisabled: overrideDisabled, ForceLoad: forceLoad,
			})
			return printResult(resp, err)
		},
	}
	loadCmd.Flags().Bool("override-disabled", false, "persist an enabled=true override before loading")
	loadCmd.Flags().Bool("force", false, "bypass manifest.Disabled and any override without persisting")

	unloadCmd := &cobra.Command{
		Use:   "unload <label>",
		Short: "Unload a job by label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			resp, err := roundTrip(resolveSocket(cmd), rpc.Request{
				Op: "unload", Label: domain.Label(args[0]), ForceUnload: force,
			})
			return printResult(resp, err)
		},
	}
	unloadCmd.Flags().Bool("force", false, "kill the process immediately instead of allowing a grace period")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every currently loaded job",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := roundTrip(resolveSocket(cmd), rpc.Request{Op: "list"})
			if err != nil {
				return err
			}
			if !resp.OK {
				return fmt.Errorf("%s", resp.Error)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp.Jobs)
		},
	}

	killCmd := &cobra.Command{
		Use:   "kill <label> <signal>",
		Short: "Send a signal to a job's process",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := roundTrip(resolveSocket(cmd), rpc.Request{
				Op: "kill", Label: domain.Label(args[0]), Signal: args[1],
			})
			return printResult(resp, err)
		},
	}

	enableCmd := &cobra.Command{
		Use:   "enable <label> <true|false>",
		Short: "Persist an enabled-state override for a job",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled := args[1] == "true" || args[1] == "1"
			resp, err := roundTrip(resolveSocket(cmd), rpc.Request{
				Op: "enable", Label: domain.Label(args[0]), Enabled: enabled,
			})
			return printResult(resp, err)
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump <label>",
		Short: "Print a diagnostic summary of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := roundTrip(resolveSocket(cmd), rpc.Request{Op: "dump", Label: domain.Label(args[0])})
			if err != nil {
				return err
			}
			if !resp.OK {
				return fmt.Errorf("%s", resp.Error)
			}
			fmt.Println(resp.Dump)
			return nil
		},
	}

	root.AddCommand(loadCmd, unloadCmd, listCmd, killCmd, enableCmd, dumpCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "taskctl:", err)
		os.Exit(1)
	}
}
