package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cadence/internal/models"
	"github.com/desertthunder/cadence/internal/shared"
)

// AuthLogin obtains a token for the chosen catalog, walking the interactive
// authorization flow when no cached or refreshable token exists.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	cat := models.Catalog(cmd.String("service"))
	sess, err := r.session(cat)
	if err != nil {
		return err
	}

	r.logger.Info("authenticating", "catalog", cat, "mode", sess.Mode())

	token, err := sess.Token(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.writePlain("✓ Authenticated with %s (%s)\n", cat, sess.Mode())
	if !token.Expiry.IsZero() {
		r.writePlain("Token valid until %s\n", token.Expiry.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// AuthStatus reports the session mode and whether a usable token is cached.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	cat := models.Catalog(cmd.String("service"))
	sess, err := r.session(cat)
	if err != nil {
		return err
	}

	mode, valid := sess.Status()

	r.writePlain("Catalog: %s\n", cat)
	r.writePlain("Mode: %s\n", mode)
	if valid {
		r.writePlain("Token: ✓ valid\n")
	} else {
		r.writePlain("Token: ✗ missing or expired (run 'cadence auth login --service %s')\n", cat)
	}
	return nil
}
