package cli

import "fmt"

func Run(args []string) error {
	if len(args) == 0 {
		printRootUsage()
		return nil
	}

	switch args[0] {
	case "run":
		return runExport(args[1:])
	case "doctor":
		return runDoctor(args[1:])
	case "help", "-h", "--help":
		printRootUsage()
		return nil
	default:
		printRootUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printRootUsage() {
	fmt.Println("cad-batch-export: batch IFC/DWG export from a CAD engine session")
	fmt.Println()
	fmt.Println("Quick Start:")
	fmt.Println("  cad-batch-export doctor")
	fmt.Println("  cad-batch-export run --variant ifc")
	fmt.Println("  cad-batch-export run --variant dwg --table <path> --close-after")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  run       export every row of a job table, then restore the session")
	fmt.Println("  doctor    check the engine bridge, scratch directory and job tables")
	fmt.Println("  help      show this help")
	fmt.Println()
	fmt.Println("Notes:")
	fmt.Println("  - Use --json on commands for machine-readable output")
	fmt.Println("  - Settings are read from CADBATCH_* variables and an optional .env file")
	fmt.Println("  - Diagnostics go to stderr; the run log is written next to the job table")
}
