// Package schema provides CLI tools for working with workflow schema files.
package schema

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jtrac/internal/domain/metadata"
	"jtrac/internal/infrastructure/config"
	"jtrac/internal/shared/logger"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Workflow schema tools",
		Long:  `Validate, normalize, and inspect workflow schema files.`,
	}

	cmd.AddCommand(
		newValidateCommand(),
		newFormatCommand(),
		newGraphCommand(),
	)

	return cmd
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a schema file",
		Long:  `Parse a workflow schema file and report whether it is well formed.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}
}

func newFormatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "format <file>",
		Short: "Normalize a schema file",
		Long:  `Parse a workflow schema file and print its canonical serialized form.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runFormat,
	}
}

func newGraphCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "graph <file>",
		Short: "Print the transition graph",
		Long:  `Parse a workflow schema file and print its states, transitions, and the roles each transition admits.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runGraph,
	}
}

func initEnv() (logger.Interface, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.NewLogger(), nil
}

func loadSchema(path string) (*metadata.Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return metadata.Parse(data)
}

func runValidate(cmd *cobra.Command, args []string) error {
	log, err := initEnv()
	if err != nil {
		return err
	}

	md, err := loadSchema(args[0])
	if err != nil {
		log.Errorw("schema rejected", "file", args[0], "error", err)
		return err
	}

	transitions := 0
	for _, state := range md.States() {
		transitions += len(md.TransitionsFrom(state))
	}

	log.Infow("schema is valid", "file", args[0])
	fmt.Printf("Schema OK: %d fields, %d roles, %d states, %d transitions\n",
		len(md.Fields()), len(md.Roles()), len(md.States()), transitions)
	return nil
}

func runFormat(cmd *cobra.Command, args []string) error {
	if _, err := initEnv(); err != nil {
		return err
	}

	md, err := loadSchema(args[0])
	if err != nil {
		return err
	}

	out, err := md.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize schema: %w", err)
	}

	fmt.Print(string(out))
	return nil
}

func runGraph(cmd *cobra.Command, args []string) error {
	if _, err := initEnv(); err != nil {
		return err
	}

	md, err := loadSchema(args[0])
	if err != nil {
		return err
	}

	for _, state := range md.States() {
		edges := md.TransitionsFrom(state)
		if len(edges) == 0 {
			fmt.Printf("%s (terminal)\n", state)
			continue
		}
		fmt.Printf("%s\n", state)
		for _, t := range edges {
			line := fmt.Sprintf("  -> %s [%s]", t.To(), strings.Join(t.Roles(), ", "))
			if required := t.Required(); len(required) > 0 {
				line += fmt.Sprintf(" requires: %s", strings.Join(required, ", "))
			}
			fmt.Println(line)
		}
	}
	return nil
}
