package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/milkywaygod2/sysutil/internal/registry"
)

// regCmd groups the Windows registry subcommands.
var regCmd = &cobra.Command{
	Use:   "reg",
	Short: "Read and export Windows registry keys",
	Long: `Read values, list subkeys, and export registry keys in .reg format.
Keys are addressed as HIVE\path, for example HKCU\Software\MyApp.
Only available on Windows; other platforms get an error.

Examples:
  sysutil reg get "HKCU\Environment" Path
  sysutil reg list "HKLM\SOFTWARE\Microsoft"
  sysutil reg export "HKCU\Software\MyApp" backup.reg`,
}

// splitKey separates the hive prefix from the key path.
func splitKey(key string) (registry.Root, string, error) {
	hive, rest, _ := strings.Cut(key, `\`)
	switch strings.ToUpper(hive) {
	case "HKCR":
		return registry.RootClassesRoot, rest, nil
	case "HKCU":
		return registry.RootCurrentUser, rest, nil
	case "HKLM":
		return registry.RootLocalMachine, rest, nil
	case "HKU":
		return registry.RootUsers, rest, nil
	case "HKCC":
		return registry.RootCurrentConfig, rest, nil
	}
	return "", "", fmt.Errorf("unknown hive %q, want HKCR, HKCU, HKLM, HKU, or HKCC", hive)
}

var regGetCmd = &cobra.Command{
	Use:   "get <key> <name>",
	Short: "Print one registry value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, keyPath, err := splitKey(args[0])
		if err != nil {
			return err
		}
		value, err := registry.GetValue(root, keyPath, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s) = %v\n", value.Name, registry.TypeName(value.Type), value.Data)
		return nil
	},
}

var regListCmd = &cobra.Command{
	Use:   "list <key>",
	Short: "List a key's subkeys and values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, keyPath, err := splitKey(args[0])
		if err != nil {
			return err
		}

		subkeys, err := registry.Subkeys(root, keyPath)
		if err != nil {
			return err
		}
		for _, name := range subkeys {
			fmt.Println(name + `\`)
		}

		values, err := registry.Values(root, keyPath)
		if err != nil {
			return err
		}
		for _, v := range values {
			fmt.Printf("%s (%s) = %v\n", v.Name, registry.TypeName(v.Type), v.Data)
		}
		return nil
	},
}

var regExportCmd = &cobra.Command{
	Use:   "export <key> <file.reg>",
	Short: "Export a key to a .reg file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, keyPath, err := splitKey(args[0])
		if err != nil {
			return err
		}
		if err := registry.Export(root, keyPath, args[1]); err != nil {
			return err
		}
		fmt.Println("exported to", args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(regCmd)
	regCmd.AddCommand(regGetCmd)
	regCmd.AddCommand(regListCmd)
	regCmd.AddCommand(regExportCmd)
}
