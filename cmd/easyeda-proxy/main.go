// Command easyeda-proxy lets the EasyEDA web editor reach a WakaTime backend
// that does not send CORS headers.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/joho/godotenv"

	"github.com/tobycm/easyeda-wakatime/internal/proxy"
)

const envAllowedDomains = "ALLOWED_DOMAINS"

func main() {
	addr := flag.String("listen", ":3000", "Listen address")
	envPath := flag.String("env", ".env", "Path to the .env file")
	origin := flag.String("origin", proxy.DefaultOrigin, "Allowed CORS origin")

	flag.Parse()

	if err := run(*addr, *envPath, *origin, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(addr, envPath, origin string, in io.Reader, out io.Writer) error {
	hosts, err := loadHosts(envPath, in, out)
	if err != nil {
		return err
	}
	if len(hosts) == 0 {
		return fmt.Errorf("%s is empty", envAllowedDomains)
	}

	app := proxy.New(proxy.Config{AllowOrigins: origin, AllowedHosts: hosts}, resty.New())
	log.Printf("proxy listening on %s, allowed: %s", addr, strings.Join(hosts, ","))
	return app.Listen(addr)
}

// loadHosts reads ALLOWED_DOMAINS from envPath, prompting for it and writing
// the file on first run. The process environment wins over the file.
func loadHosts(envPath string, in io.Reader, out io.Writer) ([]string, error) {
	err := godotenv.Load(envPath)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		raw, err := prompt(in, out)
		if err != nil {
			return nil, err
		}
		if err := godotenv.Write(map[string]string{envAllowedDomains: raw}, envPath); err != nil {
			return nil, fmt.Errorf("write %s: %w", envPath, err)
		}
		fmt.Fprintln(out, "\nGreat - you're all set!")
		if os.Getenv(envAllowedDomains) == "" {
			return proxy.ParseHosts(raw), nil
		}
	default:
		return nil, fmt.Errorf("load %s: %w", envPath, err)
	}
	return proxy.ParseHosts(os.Getenv(envAllowedDomains)), nil
}

func prompt(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprintln(out, "Welcome! It seems you have not set up your .env file yet.")
	fmt.Fprintln(out, "Please enter a list of comma separated domain names to be whitelisted in the ALLOWED_DOMAINS environment variable.")
	fmt.Fprintln(out, "\nExample: waka.hackclub.com,api.wakatime.com")
	fmt.Fprint(out, "\n> ")

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", errors.New("no input")
	}
	return strings.TrimSpace(scanner.Text()), nil
}
