package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/rolo/internal/config"
	"github.com/hpungsan/rolo/internal/contact"
	"github.com/hpungsan/rolo/internal/errors"
	"github.com/hpungsan/rolo/internal/ops"
	"github.com/hpungsan/rolo/internal/store"
	"github.com/hpungsan/rolo/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(st *store.Store, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "rolo",
		Usage:   "Local contact manager",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging (also ROLO_DEBUG=1)"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				initLog(true)
			}
			return nil
		},
		Commands: []*cli.Command{
			createCmd(st),
			getCmd(st),
			updateCmd(st),
			deleteCmd(st),
			bookmarkCmd(st),
			listCmd(st),
			exportCmd(st, cfg),
			importCmd(st, cfg),
			serveCmd(st, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// createCmd creates the create command.
func createCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a contact",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name"},
			&cli.StringSliceFlag{Name: "method", Aliases: []string{"m"}, Usage: "Contact method as type=value (repeatable)"},
			&cli.StringFlag{Name: "note", Usage: "Free-text note"},
			&cli.StringFlag{Name: "avatar", Usage: "Path to an avatar image"},
			&cli.BoolFlag{Name: "bookmarked", Aliases: []string{"b"}, Usage: "Bookmark the new contact"},
		},
		Action: func(c *cli.Context) error {
			methods, err := parseMethods(c.StringSlice("method"))
			if err != nil {
				return outputError(err)
			}

			input := ops.CreateInput{
				Name:       c.String("name"),
				Methods:    methods,
				Note:       c.String("note"),
				Bookmarked: c.Bool("bookmarked"),
			}
			if path := c.String("avatar"); path != "" {
				uri, err := readAvatar(path)
				if err != nil {
					return outputError(err)
				}
				input.Avatar = &uri
			}

			output, err := ops.Create(c.Context, st, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// getCmd creates the get command.
func getCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get a contact by ID",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "avatar", Usage: "Include the avatar data URI"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Get(c.Context, st, ops.GetInput{
				ID:            c.Args().First(),
				IncludeAvatar: c.Bool("avatar"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// updateCmd creates the update command. Only flags that are set change the
// stored record.
func updateCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update a contact",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "New display name"},
			&cli.StringSliceFlag{Name: "method", Aliases: []string{"m"}, Usage: "Replace all methods with type=value (repeatable)"},
			&cli.BoolFlag{Name: "clear-methods", Usage: "Remove all contact methods"},
			&cli.StringFlag{Name: "note", Usage: "New note"},
			&cli.StringFlag{Name: "avatar", Usage: "Path to a new avatar image"},
			&cli.BoolFlag{Name: "clear-avatar", Usage: "Remove the avatar"},
			&cli.BoolFlag{Name: "bookmarked", Aliases: []string{"b"}, Usage: "Set the bookmark flag (--bookmarked=false clears it)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.UpdateInput{ID: c.Args().First()}

			if c.IsSet("name") {
				name := c.String("name")
				input.Name = &name
			}
			if c.IsSet("method") || c.Bool("clear-methods") {
				methods, err := parseMethods(c.StringSlice("method"))
				if err != nil {
					return outputError(err)
				}
				input.Methods = &methods
			}
			if c.IsSet("note") {
				note := c.String("note")
				input.Note = &note
			}
			switch {
			case c.Bool("clear-avatar"):
				empty := ""
				input.Avatar = &empty
			case c.IsSet("avatar"):
				uri, err := readAvatar(c.String("avatar"))
				if err != nil {
					return outputError(err)
				}
				input.Avatar = &uri
			}
			if c.IsSet("bookmarked") {
				bookmarked := c.Bool("bookmarked")
				input.Bookmarked = &bookmarked
			}

			output, err := ops.Update(c.Context, st, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a contact",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm the deletion"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("yes") {
				return outputError(errors.NewInvalidRequest("refusing to delete without --yes"))
			}

			output, err := ops.Delete(c.Context, st, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// bookmarkCmd creates the bookmark command.
func bookmarkCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "bookmark",
		Usage:     "Toggle a contact's bookmark",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.ToggleBookmark(c.Context, st, ops.BookmarkInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List contacts, optionally filtered by a search term",
		ArgsUsage: "[term]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "bookmarked", Aliases: []string{"b"}, Usage: "Only bookmarked contacts"},
		},
		Action: func(c *cli.Context) error {
			input := ops.SearchInput{
				Term:  strings.Join(c.Args().Slice(), " "),
				Scope: string(contact.ScopeAll),
			}
			if c.Bool("bookmarked") {
				input.Scope = string(contact.ScopeBookmarked)
			}

			output, err := ops.Search(c.Context, st, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(st *store.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all contacts to a spreadsheet",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.rolo/exports/contacts_<date>.<format>)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "xlsx (default) or csv"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, st, cfg, ops.ExportInput{
				Path:   c.String("path"),
				Format: c.String("format"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(st *store.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Append contacts from an .xlsx or .csv file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, st, cfg, ops.ImportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(st *store.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the local web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 7480, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest("port must be between 1 and 65535"))
			}
			srv := web.NewServer(st, cfg, Version, c.String("bind"), port)
			if err := web.Run(srv); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if rErr, ok := errors.As(err); ok {
		if rErr.Code == errors.ErrInternal && rErr.Unwrap() != nil {
			// INTERNAL messages are generic; show the cause on the terminal.
			return cli.Exit(fmt.Sprintf("[%s] %s: %v", rErr.Code, rErr.Message, rErr.Unwrap()), 1)
		}
		return cli.Exit(fmt.Sprintf("[%s] %s", rErr.Code, rErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseMethods turns type=value pairs into contact methods. The type is kept
// verbatim, so custom types are allowed.
func parseMethods(pairs []string) ([]contact.Method, error) {
	methods := make([]contact.Method, 0, len(pairs))
	for _, pair := range pairs {
		typ, value, ok := strings.Cut(pair, "=")
		typ = strings.TrimSpace(typ)
		if !ok || typ == "" {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("method %q must be type=value", pair))
		}
		methods = append(methods, contact.Method{Type: contact.MethodType(typ), Value: value})
	}
	return methods, nil
}

// readAvatar loads an image file and encodes it as a data URI.
func readAvatar(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewFileNotFound(path)
		}
		return "", errors.NewInternal(err)
	}
	if info.Size() > contact.MaxAvatarBytes {
		return "", errors.NewInvalidRequest("avatar image exceeds 2 MiB")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return contact.AvatarDataURI(data)
}
