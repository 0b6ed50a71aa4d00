package cli

import (
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"sctutils/internal/config"
	"sctutils/internal/console"
	"sctutils/internal/fsutil"
	"sctutils/internal/mathutil"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root Cobra command
func NewRootCmd(root *Root) *cobra.Command {
	var (
		quiet      bool
		noColor    bool
		outputType string
	)

	rootCmd := &cobra.Command{
		Use:   "sctutils",
		Short: "Helpers for driving FSL tools from a processing pipeline",
		Long: `sctutils wraps the FSL command-line tools used by the spinal cord pipeline:
running commands, parsing NIfTI file names, querying dimensions and orientation,
and relocating outputs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if quiet {
				root.cfg.Console.Verbose = false
			}
			if noColor {
				root.cfg.Console.Color = false
			}
			if outputType != "" {
				next := *root.cfg
				next.FSL.OutputType = strings.ToUpper(outputType)
				if err := next.Validate(); err != nil {
					return err
				}
				root.cfg.FSL = next.FSL
			}
			root.rebuild()
			return nil
		},
	}
	rootCmd.SetOut(root.out)

	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress status lines")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&outputType, "output-type", "", "FSLOUTPUTTYPE for invoked tools (NIFTI|NIFTI_GZ|NIFTI_PAIR)")

	rootCmd.AddCommand(newRunCmd(root))
	rootCmd.AddCommand(newParseCmd(root))
	rootCmd.AddCommand(newCheckCmd(root))
	rootCmd.AddCommand(newDimCmd(root))
	rootCmd.AddCommand(newOrientCmd(root))
	rootCmd.AddCommand(newRelocateCmd(root))
	rootCmd.AddCommand(newSignCmd(root))
	rootCmd.AddCommand(newCheckInstalledCmd(root))
	rootCmd.AddCommand(newSlashCmd(root))
	rootCmd.AddCommand(newDeleteCmd(root))
	rootCmd.AddCommand(newToolsCmd(root))
	rootCmd.AddCommand(newHistoryCmd(root))
	rootCmd.AddCommand(newWatchCmd(root))
	rootCmd.AddCommand(newConfigCmd(root))
	rootCmd.AddCommand(newVersionCmd(root))

	return rootCmd
}

func newRunCmd(root *Root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <command> [args...]",
		Short: "Run a shell command and print its combined output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := root.runner.Run(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if res.Output != "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.Output)
			}
			return nil
		},
	}
	// flags after the first positional belong to the wrapped command
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newParseCmd(root *Root) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <path>",
		Short: "Split a path into directory, base name and extension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, base, ext := fsutil.ParseFilename(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", dir, base, ext)
			return nil
		},
	}
}

func newCheckCmd(root *Root) *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>...",
		Short: "Verify that files exist (exact, .nii, .nii.gz or directory)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range args {
				if err := fsutil.CheckExist(p, root.printer); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newDimCmd(root *Root) *cobra.Command {
	return &cobra.Command{
		Use:   "dim <image>",
		Short: "Print nx ny nz nt px py pz pt of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := root.toolkit.Dimensions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %d %d %d %g %g %g %g\n", d.Nx, d.Ny, d.Nz, d.Nt, d.Px, d.Py, d.Pz, d.Pt)
			return nil
		},
	}
}

func newOrientCmd(root *Root) *cobra.Command {
	return &cobra.Command{
		Use:   "orient <image>",
		Short: "Print the orientation label of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			label, err := root.toolkit.Orientation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), label)
			return nil
		},
	}
}

func newRelocateCmd(root *Root) *cobra.Command {
	return &cobra.Command{
		Use:   "relocate <input> <output_dir> <output_name> <output_ext>",
		Short: "Move an output into place, converting its file type if needed",
		Long: `Move <input> to <output_dir>/<output_name><output_ext>. Existing outputs with the
same name are deleted first. When the extensions differ the file is converted
with the configured file type tool.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := fsutil.SlashAtTheEnd(args[1], true)
			out, err := root.toolkit.GenerateOutputFile(cmd.Context(), args[0], dir, args[2], args[3])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newSignCmd(root *Root) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sign [--] <number>",
		Short:   "Print 1 for non-negative numbers and -1 otherwise",
		Example: "  sctutils sign -- -3.5",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid number %q: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), mathutil.Sign(x))
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return fmt.Errorf("%w (put negative numbers after --, e.g. sign -- -3)", err)
	})
	return cmd
}

func newCheckInstalledCmd(root *Root) *cobra.Command {
	return &cobra.Command{
		Use:   "check-installed <probe_command> <name>",
		Short: "Fail if the probe command does not succeed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := root.runner.CheckInstalled(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			root.printer.Print("  OK: "+args[1], console.Success)
			return nil
		},
	}
}

func newSlashCmd(root *Root) *cobra.Command {
	var slash bool
	cmd := &cobra.Command{
		Use:   "slash <path>",
		Short: "Add or remove the trailing slash of a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), fsutil.SlashAtTheEnd(args[0], slash))
			return nil
		},
	}
	cmd.Flags().BoolVar(&slash, "slash", false, "ensure a trailing slash instead of removing it")
	return cmd
}

func newDeleteCmd(root *Root) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path>...",
		Short: "Delete the .nii and .nii.gz files sharing each base name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range args {
				if err := fsutil.DeleteNifti(p); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newToolsCmd(root *Root) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Show availability of the required FSL tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			status := root.tools.GetToolStatus(cmd.Context())
			names := make([]string, 0, len(status))
			for name := range status {
				names = append(names, name)
			}
			sort.Strings(names)

			missing := 0
			for _, name := range names {
				s := status[name]
				if s.Available {
					root.printer.Always(fmt.Sprintf("  %-18s available  %s", name, s.Path), console.Success)
				} else {
					missing++
					root.printer.Always(fmt.Sprintf("  %-18s missing", name), console.Error)
				}
			}
			if missing > 0 {
				return fmt.Errorf("%d of %d tools missing", missing, len(names))
			}
			return nil
		},
	}
}

func newHistoryCmd(root *Root) *cobra.Command {
	var (
		limit   int
		outputs bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently run commands or generated outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if root.store == nil {
				return fmt.Errorf("history database unavailable (%s)", root.cfg.Paths.DatabasePath)
			}
			w := cmd.OutOrStdout()
			if outputs {
				recs, err := root.store.RecentOutputs(limit)
				if err != nil {
					return err
				}
				for _, rec := range recs {
					fmt.Fprintf(w, "%s  %s <- %s\n", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"), rec.OutputPath, rec.InputPath)
				}
				return nil
			}
			recs, err := root.store.RecentCommands(limit)
			if err != nil {
				return err
			}
			for _, rec := range recs {
				fmt.Fprintf(w, "%s  [%d] %6dms  %s\n", rec.StartedAt.Local().Format("2006-01-02 15:04:05"), rec.Status, rec.Duration.Milliseconds(), rec.Command)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	cmd.Flags().BoolVar(&outputs, "outputs", false, "list relocated outputs instead of commands")
	return cmd
}

func newWatchCmd(root *Root) *cobra.Command {
	var dims bool
	cmd := &cobra.Command{
		Use:   "watch <directory>...",
		Short: "Report NIfTI files as they appear in directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()
			root.log.Info("watching directories", "dirs", args)
			return root.watchFn(ctx, args, root.log, func(ev fsutil.NiftiEvent) {
				line := fmt.Sprintf("%s\t%s\t%s", ev.Dir, ev.Base, ev.Ext)
				if dims {
					d, err := root.toolkit.Dimensions(ctx, ev.Path)
					if err != nil {
						root.printer.Always("  WARNING: "+err.Error(), console.Warning)
					} else {
						line += fmt.Sprintf("\t%dx%dx%dx%d", d.Nx, d.Ny, d.Nz, d.Nt)
					}
				}
				fmt.Fprintln(w, line)
			})
		},
	}
	cmd.Flags().BoolVar(&dims, "dims", false, "also query dimensions of each new file")
	return cmd
}

func newConfigCmd(root *Root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			cfg := root.cfg
			fmt.Fprintf(w, "Config file: %s\n", config.Path())
			fmt.Fprintf(w, "\nFSL:\n")
			fmt.Fprintf(w, "  Output type: %s\n", cfg.FSL.OutputType)
			fmt.Fprintf(w, "  Size tool: %s\n", cfg.FSL.SizeTool)
			fmt.Fprintf(w, "  Orientation tool: %s\n", cfg.FSL.OrientationTool)
			fmt.Fprintf(w, "  File type tool: %s\n", cfg.FSL.FileTypeTool)
			fmt.Fprintf(w, "  Shell: %s\n", cfg.FSL.Shell)
			fmt.Fprintf(w, "\nConsole:\n")
			fmt.Fprintf(w, "  Verbose: %t\n", cfg.Console.Verbose)
			fmt.Fprintf(w, "  Color: %t\n", cfg.Console.Color)
			fmt.Fprintf(w, "\nHistory database: %s\n", cfg.Paths.DatabasePath)
			return nil
		},
	})
	return cmd
}

func newVersionCmd(root *Root) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and required tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "sctutils %s\n", version)
			fmt.Fprintf(w, "Built with Go %s\n", runtime.Version())
			fmt.Fprintf(w, "Required tools: %s\n", strings.Join(root.tools.Required(), ", "))
			return nil
		},
	}
}
