// Utilities for parsing cURL commands.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// CurlRequest represents headers and cookies parsed from a cURL command, as
// copied from a browser's "Copy as cURL" menu. Used to rescue a platform
// session from a logged-in browser when the scripted handshake is unavailable.
type CurlRequest struct {
	Headers map[string]string
	Cookies map[string]string
}

// ParseCurlFile reads a file containing a cURL command and extracts headers and cookies.
func ParseCurlFile(filepath string) (*CurlRequest, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

var (
	curlHeaderRegex = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	curlCookieRegex = regexp.MustCompile(`-b\s+'([^']+)'|-b\s+"([^"]+)"`)
)

// ParseCurlCommand parses a cURL command string and extracts headers and
// cookies. Cookies are taken from a -b flag when present, otherwise from a
// Cookie header.
func ParseCurlCommand(data []byte) (*CurlRequest, error) {
	curlCmd := string(data)
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	req := &CurlRequest{
		Headers: make(map[string]string),
		Cookies: make(map[string]string),
	}

	var cookieLine string

	for _, match := range curlHeaderRegex.FindAllStringSubmatch(curlCmd, -1) {
		headerLine := match[1]
		if headerLine == "" {
			headerLine = match[2]
		}

		parts := strings.SplitN(headerLine, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if strings.EqualFold(key, "cookie") {
			if cookieLine == "" {
				cookieLine = value
			}
			continue
		}
		req.Headers[key] = value
	}

	if match := curlCookieRegex.FindStringSubmatch(curlCmd); len(match) > 1 {
		if match[1] != "" {
			cookieLine = match[1]
		} else if match[2] != "" {
			cookieLine = match[2]
		}
	}

	for _, pair := range strings.Split(cookieLine, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		req.Cookies[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	if len(req.Headers) == 0 && len(req.Cookies) == 0 {
		return nil, fmt.Errorf("no headers found in curl command")
	}

	return req, nil
}

// Cookie returns the value of a named cookie, or an empty string.
func (c *CurlRequest) Cookie(name string) string {
	return c.Cookies[name]
}
