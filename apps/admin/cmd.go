package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/lonesystem/core"
	"github.com/trezcool/lonesystem/core/employee"
	"github.com/trezcool/lonesystem/core/report"
	"github.com/trezcool/lonesystem/core/user"
	"github.com/trezcool/lonesystem/storage/database"
)

var (
	readPasswordFunc  = term.ReadPassword      // mockable
	runMigrationsFunc = database.RunMigrations // mockable

	errHelp             = errors.New("help provided")
	errPasswordMismatch = errors.New("passwords do not match")
)

type commandLine struct {
	conf      *core.Config
	db        *sqlx.DB
	validate  *validator.Validate
	usrSvc    *user.Service
	empSvc    *employee.Service
	reportSvc *report.Service
	out       io.Writer
}

func (cli *commandLine) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, args...)
}

// promptPassword reads a password from the terminal without echoing it.
func (cli *commandLine) promptPassword(label string) (string, error) {
	cli.printf("%s:", label)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	cli.printf("\n")
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Lönesystem administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Usage()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	root.AddCommand(
		&cobra.Command{
			Use:   "migrate COMMAND [ARGS...]",
			Short: "Run a goose migration command (up, down, status, version, redo, reset...)",
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 0 {
					_ = cmd.Usage()
					return errHelp
				}
				return cli.migrate(cmd.Context(), args)
			},
		},
		cli.addUserCmd(),
		cli.resetPasswordCmd(),
		&cobra.Command{
			Use:   "import-employees FILE",
			Short: "Create employees from an xlsx or xls spreadsheet",
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) != 1 {
					_ = cmd.Usage()
					return errHelp
				}
				return cli.importEmployees(cmd.Context(), args[0])
			},
		},
		cli.exportReportCmd(),
	)
	return root
}

func (cli *commandLine) addUserCmd() *cobra.Command {
	var name, uname, email string
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create an administrator account. The password will be prompted next.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if uname == "" || email == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := cli.promptPassword("Enter password")
			if err != nil {
				return err
			}
			if pwd == "" {
				_ = cmd.Usage()
				return errHelp
			}
			confirm, err := cli.promptPassword("Confirm password")
			if err != nil {
				return err
			}
			if confirm != pwd {
				return errPasswordMismatch
			}
			if name == "" {
				name = uname
			}
			return cli.addUser(cmd.Context(), user.NewUser{
				Name:            name,
				Username:        uname,
				Email:           email,
				Password:        pwd,
				PasswordConfirm: confirm,
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "The user's full name (defaults to the username).")
	cmd.Flags().StringVar(&uname, "username", "", "The user's username.")
	cmd.Flags().StringVar(&email, "email", "", "The user's email.")
	return cmd
}

func (cli *commandLine) resetPasswordCmd() *cobra.Command {
	var uname string
	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password. The password will be prompted next.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if uname == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := cli.promptPassword("Enter password")
			if err != nil {
				return err
			}
			if pwd == "" {
				_ = cmd.Usage()
				return errHelp
			}
			confirm, err := cli.promptPassword("Confirm password")
			if err != nil {
				return err
			}
			if confirm != pwd {
				return errPasswordMismatch
			}
			return cli.resetPassword(cmd.Context(), uname, pwd, confirm)
		},
	}
	cmd.Flags().StringVar(&uname, "username", "", "The user's username or email.")
	return cmd
}

func (cli *commandLine) exportReportCmd() *cobra.Command {
	now := core.NowFunc()
	var (
		year, month int
		out         string
	)
	cmd := &cobra.Command{
		Use:   "export-report",
		Short: "Write the monthly payroll report to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = fmt.Sprintf("rapport_%d_%02d.xlsx", year, month)
			}
			return cli.exportReport(cmd.Context(), year, month, out)
		},
	}
	cmd.Flags().IntVar(&year, "year", now.Year(), "Report year.")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "Report month (1-12).")
	cmd.Flags().StringVar(&out, "out", "", "Output file (defaults to rapport_<year>_<month>.xlsx).")
	return cmd
}

// run executes the command line; args[0] is the program name.
func (cli *commandLine) run(args []string) error {
	if cli.out == nil {
		cli.out = os.Stdout
	}
	root := cli.rootCmd()
	if len(args) > 0 {
		args = args[1:]
	}
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}
