// Copyright 2024 Juca Crispim <juca@poraodojuca.net>

// This file is part of cgikit.

// cgikit is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// cgikit is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.

// You should have received a copy of the GNU Affero General Public License
// along with cgikit. If not, see <http://www.gnu.org/licenses/>.

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jucacrispim/cgikit/cgi"
)

var errNotBasic = errors.New("not a Basic authorization header")

func newAuthCmd() *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Encode and decode Basic authorization headers",
	}

	encodeCmd := &cobra.Command{
		Use:   "encode <username> <password>",
		Short: "Print the Authorization header value for the credentials",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" || args[1] == "" {
				return errors.New("username and password must not be empty")
			}
			auth := cgi.BasicAuth{Username: args[0], Password: args[1]}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), auth.Header())
			return err
		},
	}

	var showPassword bool
	decodeCmd := &cobra.Command{
		Use:   "decode <header>",
		Short: "Decode an Authorization header value the way a script would",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := cgi.ParseAuthorization(args[0])
			if err != nil {
				return err
			}
			if auth == nil {
				return errNotBasic
			}
			password := "***"
			if showPassword {
				password = auth.Password
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "username: %s\npassword: %s\n", auth.Username, password)
			return err
		},
	}
	decodeCmd.Flags().BoolVar(&showPassword, "show-password", false, "print the password in clear")

	authCmd.AddCommand(encodeCmd, decodeCmd)
	return authCmd
}
