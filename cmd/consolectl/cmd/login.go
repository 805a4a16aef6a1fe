package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the console API",
	RunE: func(cmd *cobra.Command, args []string) error {
		displayAppname(console.cfg.GetAppName())

		username := strings.TrimSpace(loginUsername)
		if username == "" {
			var err error
			username, err = prompt("Username: ")
			if err != nil {
				return err
			}
		}
		password := loginPassword
		if password == "" {
			var err error
			password, err = prompt("Password: ")
			if err != nil {
				return err
			}
		}

		if err := console.sess.Login(cmd.Context(), username, password); err != nil {
			return errors.New("login failed: invalid credentials")
		}

		user := console.sess.User()
		fmt.Printf("Logged in as %s (%s)\n", user.Username, strings.Join(user.Roles, ", "))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username to log in with")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", errors.Wrap(err, "[prompt] reading input")
	}
	return strings.TrimSpace(line), nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
