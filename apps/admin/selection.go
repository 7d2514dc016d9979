package main

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

func (cli *commandLine) clear() error {
	if err := cli.selSvc.Clear(context.Background()); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "all selections deleted")
	return nil
}

func (cli *commandLine) sendDigest(to []string) error {
	n, err := cli.digest.Send(context.Background(), to...)
	if err != nil {
		return err
	}
	cli.digest.Stop()
	fmt.Fprintf(cli.out, "digest sent to %d recipient(s)\n", n)
	return nil
}

// hashPassword prints the bcrypt hash to set as the admin password hash.
func (cli *commandLine) hashPassword(pwd []byte) error {
	hash, err := bcrypt.GenerateFromPassword(pwd, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, string(hash))
	return nil
}
