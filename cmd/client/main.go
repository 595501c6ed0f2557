// Package main is the interactive admin shell for the showcase API.
package main

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atinyakov/devshowcase/internal/client/api"
	"github.com/atinyakov/devshowcase/internal/client/storage"
	"github.com/atinyakov/devshowcase/internal/models"
)

var (
	version   string
	buildDate string
)

const helpText = `Available commands:
  verify [key]           check an admin key and remember it
  logout                 forget the remembered admin key
  status                 show whether an admin key is remembered
  list [limit] [cursor]  list projects
  featured [limit]       list featured projects
  get <id>               show one project
  slug <slug>            show one project by slug
  create                 add a project
  edit <id>              change a project
  delete <id>            remove a project
  upload <file>          upload an image and print its URL
  exit`

// repl runs the interactive shell loop until input ends or exit is typed.
func repl(ctx context.Context, c *api.Client, p *storage.Prompter, out io.Writer) {
	for {
		line, err := p.Line("showcase> ")
		if err != nil {
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(out, "Bye")
			return
		}
		if err := run(ctx, c, p, out, args); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}
}

func run(ctx context.Context, c *api.Client, p *storage.Prompter, out io.Writer, args []string) error {
	switch args[0] {
	case "help":
		fmt.Fprintln(out, helpText)
	case "verify":
		var key string
		if len(args) > 1 {
			key = args[1]
		} else {
			var err error
			if key, err = p.Line("Admin key: "); err != nil {
				return err
			}
		}
		if err := c.VerifyKey(ctx, key); err != nil {
			return err
		}
		fmt.Fprintln(out, "Admin key verified and saved")
	case "logout":
		if err := c.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Admin key removed")
	case "status":
		ok, err := c.KeyStatus()
		switch {
		case err != nil:
			fmt.Fprintf(out, "Admin key file is unreadable (%v); run logout to reset it\n", err)
		case ok:
			fmt.Fprintln(out, "Admin key is set")
		default:
			fmt.Fprintln(out, "Admin key is not set")
		}
	case "list", "featured":
		params := models.ListParams{}
		rest := args[1:]
		if args[0] == "featured" {
			featured := true
			params.Featured = &featured
		}
		if len(rest) > 0 {
			n, err := strconv.Atoi(rest[0])
			if err != nil {
				return fmt.Errorf("limit: %w", err)
			}
			params.Limit = &n
		}
		if len(rest) > 1 {
			params.Cursor = rest[1]
		}
		page, err := c.List(ctx, params)
		if err != nil {
			return err
		}
		for _, pr := range page.Items {
			fmt.Fprintf(out, "%s  %-24s %s\n", pr.ID, pr.Slug, pr.Title)
		}
		if page.NextCursor != "" {
			fmt.Fprintf(out, "next cursor: %s\n", page.NextCursor)
		}
	case "get", "slug":
		if len(args) < 2 {
			return fmt.Errorf("usage: %s <value>", args[0])
		}
		var (
			pr  *models.Project
			err error
		)
		if args[0] == "get" {
			pr, err = c.Get(ctx, args[1])
		} else {
			pr, err = c.GetBySlug(ctx, args[1])
		}
		if err != nil {
			return err
		}
		printJSON(out, pr)
	case "create":
		if !c.LoggedIn() {
			return storage.MissingSecretError{}
		}
		in, err := p.Project(nil)
		if err != nil {
			return err
		}
		pr, err := c.Create(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Project created: %s\n", pr.ID)
	case "edit":
		if len(args) < 2 {
			return errors.New("usage: edit <id>")
		}
		if !c.LoggedIn() {
			return storage.MissingSecretError{}
		}
		current, err := c.Get(ctx, args[1])
		if err != nil {
			return err
		}
		in, err := p.Project(current)
		if err != nil {
			return err
		}
		if _, err := c.Update(ctx, args[1], in); err != nil {
			return err
		}
		fmt.Fprintln(out, "Project updated")
	case "delete":
		if len(args) < 2 {
			return errors.New("usage: delete <id>")
		}
		pr, err := c.Delete(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Project deleted: %s\n", pr.Slug)
	case "upload":
		if len(args) < 2 {
			return errors.New("usage: upload <file>")
		}
		res, err := c.UploadImage(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Uploaded: %s\n", res.URL)
	default:
		fmt.Fprintln(out, "Unknown command. Type 'help' for a list of commands.")
	}
	return nil
}

func printJSON(out io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(out, string(b))
}

// main parses command-line flags and starts the shell.
func main() {
	var (
		baseURL string
		keyFile string
		caFile  string
		showVer bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&keyFile, "key-file", "", "where the admin key is kept (default: user config dir)")
	flag.StringVar(&caFile, "ca", "", "CA certificate trusted for the server")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("Showcase Admin\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	if keyFile == "" {
		path, err := storage.DefaultPath()
		if err != nil {
			log.Fatal(err)
		}
		keyFile = path
	}

	httpClient, err := storage.NewHTTPClient(caFile, 30*time.Second)
	if err != nil {
		log.Fatal(err)
	}

	client := api.New(strings.TrimRight(baseURL, "/"), httpClient, storage.New(keyFile))
	repl(context.Background(), client, storage.NewPrompter(os.Stdin, os.Stdout), os.Stdout)
}
