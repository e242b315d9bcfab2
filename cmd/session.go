package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/Lukasvo/cookiedoo-filler/internal/models"
	"github.com/Lukasvo/cookiedoo-filler/internal/services"
	"github.com/Lukasvo/cookiedoo-filler/internal/shared"
)

// Login runs the platform login handshake and installs the credential on the
// API client. Mostly useful as a credentials check, since sessions are not
// persisted between runs.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	r.logger.Info("negotiating platform session", "user", r.config.Credentials.Username)
	r.writePlain("Negotiating platform session...\n")

	cred, err := r.ensureSession().Authenticate(ctx)
	if err != nil {
		return err
	}

	r.ensureAPI().SetCredential(cred)

	r.writePlain("✓ Session established\n")
	r.writePlain("  %s: %s\n", services.TokenCookie, truncateSecret(cred.AuthToken))
	r.writePlain("  %s: %s\n", services.ProxyCookie, truncateSecret(cred.ProxySession))
	return nil
}

// SessionFromCurl checks a browser cURL capture for the session cookies the
// importer needs. Cookies are never written to disk, so the capture is
// applied per run via the --curl-file flag on import commands.
func (r *Runner) SessionFromCurl(ctx context.Context, cmd *cli.Command) error {
	r.configure(cmd)

	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidFlag)
	}

	r.logger.Info("parsing cURL command for session cookies")

	var request *shared.CurlRequest
	var err error

	if curlFile != "" {
		request, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		request, err = shared.ParseCurlCommand([]byte(curlCmd))
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	found := 0
	for _, name := range []string{services.TokenCookie, services.ProxyCookie, services.LocaleCookie, services.AuthFlagCookie} {
		if value := request.Cookie(name); value != "" {
			r.writePlain("✓ %s: %s\n", name, truncateSecret(value))
			found++
		} else {
			r.writePlain("✗ %s: missing\n", name)
		}
	}

	cred := &models.SessionCredential{
		AuthToken:    request.Cookie(services.TokenCookie),
		ProxySession: request.Cookie(services.ProxyCookie),
	}
	if !cred.Complete() {
		return fmt.Errorf("%w: capture is missing the %s or %s cookie", shared.ErrAuthMissing, services.TokenCookie, services.ProxyCookie)
	}

	r.writePlainln("Session cookies look usable (%d/4 present).", found)
	if curlFile != "" {
		r.writePlain("Run 'cookiedoo-filler import url <url> --curl-file %s' to import with them.\n", curlFile)
	} else {
		r.writePlain("Save the command to a file and pass it with --curl-file to import with these cookies.\n")
	}

	return nil
}

// credentialFromCurlFile builds a static session source from a cURL capture.
func (r *Runner) credentialFromCurlFile(path string) (*services.StaticAuthenticator, error) {
	request, err := shared.ParseCurlFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cURL file: %w", err)
	}

	cred := &models.SessionCredential{
		AuthToken:    request.Cookie(services.TokenCookie),
		ProxySession: request.Cookie(services.ProxyCookie),
	}
	if !cred.Complete() {
		return nil, fmt.Errorf("%w: capture is missing the %s or %s cookie", shared.ErrAuthMissing, services.TokenCookie, services.ProxyCookie)
	}

	return &services.StaticAuthenticator{Credential: cred}, nil
}

// truncateSecret shortens cookie values for display so full session tokens
// never land in terminal scrollback.
func truncateSecret(value string) string {
	const keep = 8
	if len(value) <= keep {
		return value
	}
	return value[:keep] + "..."
}
