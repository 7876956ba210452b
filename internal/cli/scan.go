package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/playgraph/playgraph/pkg/discover"
	"github.com/playgraph/playgraph/pkg/errors"
)

// scanCommand creates the scan command for discovering repository inputs.
func (c *CLI) scanCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan [repo]",
		Short: "Discover inventories and playbooks in a repository",
		Long: `Scan walks a repository and lists the Ansible input files playgraph
understands: files inside inventory/ directories and playbooks inside
playbooks/ directories that target hosts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScan(args[0], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func (c *CLI) runScan(root string, asJSON bool) error {
	if err := errors.ValidateRepoPath(root); err != nil {
		return err
	}

	p := newProgress(c.Logger)
	res, err := discover.Scan(root)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Scanned %s", root))

	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(res)
	}

	if len(res.Inventories) == 0 && len(res.Playbooks) == 0 {
		printWarning("No inventories or playbooks found")
		return nil
	}

	printInfo("Inventories (%d)", len(res.Inventories))
	for _, inv := range res.Inventories {
		printFile(inv)
	}
	printInfo("Playbooks (%d)", len(res.Playbooks))
	for _, pb := range res.Playbooks {
		printFile(pb)
	}

	if len(res.Playbooks) > 0 {
		printNextStep("Generate a diagram",
			fmt.Sprintf("playgraph generate %s -p %s", root, res.Playbooks[0]))
	}
	return nil
}
