// Package proxy forwards browser requests from the EasyEDA web editor to an
// allow-listed set of time-tracking backends, adding CORS headers.
package proxy

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/url"
	"slices"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// DefaultOrigin is the web editor's origin.
const DefaultOrigin = "https://pro.easyeda.com"

// Errors returned by DecodeTarget.
var (
	ErrInvalidTarget = errors.New("proxy: invalid url")
	ErrNotAllowed    = errors.New("proxy: hostname not in ALLOWED_DOMAINS")
)

// strippedHeaders identify the browser or belong to the inbound connection
// and must not reach the backend.
var strippedHeaders = []string{
	"Origin", "Host", "Referer", "User-Agent",
	"Connection", "Content-Length", "Accept-Encoding",
}

// Config controls which callers and targets are accepted.
type Config struct {
	AllowOrigins string
	AllowedHosts []string
}

// ParseHosts splits a comma separated ALLOWED_DOMAINS value.
func ParseHosts(raw string) []string {
	var hosts []string
	for _, h := range strings.Split(raw, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// New builds the proxy application. client performs the upstream requests.
func New(cfg Config, client *resty.Client) *fiber.App {
	if cfg.AllowOrigins == "" {
		cfg.AllowOrigins = DefaultOrigin
	}
	if client == nil {
		client = resty.New()
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	app.All("/proxy/:target", func(c *fiber.Ctx) error {
		target, err := DecodeTarget(c.Params("target"), cfg.AllowedHosts)
		switch {
		case errors.Is(err, ErrNotAllowed):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "hostname not whitelisted in ALLOWED_DOMAINS environment variable"})
		case err != nil:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid url"})
		}

		headers := c.GetReqHeaders()
		for _, h := range strippedHeaders {
			delete(headers, h)
		}

		req := client.R().
			SetContext(c.UserContext()).
			SetBody(c.Body()).
			SetHeaderMultiValues(headers)

		var resp *resty.Response
		switch c.Method() {
		case fiber.MethodGet:
			resp, err = req.Get(target)
		case fiber.MethodPost:
			resp, err = req.Post(target)
		case fiber.MethodPut:
			resp, err = req.Put(target)
		case fiber.MethodDelete:
			resp, err = req.Delete(target)
		default:
			return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"error": "invalid method"})
		}
		if err != nil {
			log.Printf("proxy: %s %s: %v", c.Method(), target, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}

		if ct := resp.Header().Get(fiber.HeaderContentType); ct != "" {
			c.Set(fiber.HeaderContentType, ct)
		}
		c.Status(resp.StatusCode())
		return c.Send(resp.Body())
	})

	return app
}

// DecodeTarget turns the base64 path segment into an absolute URL whose host
// is in allowed. Both standard and URL-safe alphabets are accepted.
func DecodeTarget(encoded string, allowed []string) (string, error) {
	if unescaped, err := url.PathUnescape(encoded); err == nil {
		encoded = unescaped
	}

	var raw []byte
	var err error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if raw, err = enc.DecodeString(encoded); err == nil {
			break
		}
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}

	u, err := url.ParseRequestURI(string(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", ErrInvalidTarget
	}
	if !slices.Contains(allowed, u.Host) {
		return "", fmt.Errorf("%w: %s", ErrNotAllowed, u.Host)
	}
	return u.String(), nil
}
