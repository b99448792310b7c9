package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/ruteri/project-nft-registry/api/clients"
	"github.com/ruteri/project-nft-registry/auth"
	"github.com/ruteri/project-nft-registry/cmd/flags"
	"github.com/ruteri/project-nft-registry/interfaces"
	"github.com/ruteri/project-nft-registry/storage"
	"github.com/urfave/cli/v2"
)

var tokenIDFlag = &cli.Uint64Flag{
	Name:     "token-id",
	Required: true,
	Usage:    "token id",
}

func main() {
	app := &cli.App{
		Name:  "registry-client",
		Usage: "Call the project NFT registry API",
		Flags: []cli.Flag{
			flags.ServerURLFlag,
			flags.PrivateKeyFlag,
		},
		Commands: []*cli.Command{
			{
				Name:  "address",
				Usage: "Print the address requests are signed as",
				Action: func(cCtx *cli.Context) error {
					signer, err := flags.LoadSigner(cCtx)
					if err != nil {
						return err
					}
					return printJSON(map[string]string{"address": signer.Address().Hex()})
				},
			},
			{
				Name:  "init",
				Usage: "Initialize the registry with an admin (defaults to the signer)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "admin", Usage: "admin address"},
				},
				Action: func(cCtx *cli.Context) error {
					client, signer, err := newClient(cCtx)
					if err != nil {
						return err
					}
					admin := signer.Address()
					if raw := cCtx.String("admin"); raw != "" {
						if admin, err = interfaces.ParseAddress(raw); err != nil {
							return err
						}
					}
					if err := client.Initialize(cCtx.Context, admin); err != nil {
						return err
					}
					return printJSON(map[string]string{"admin": admin.Hex()})
				},
			},
			{
				Name:  "mint",
				Usage: "Mint a project token (admin only)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Required: true, Usage: "recipient address"},
					&cli.StringFlag{Name: "project-id", Required: true, Usage: "project identifier"},
					&cli.StringFlag{Name: "content-pointer", Required: true, Usage: "content pointer of the project bundle"},
				},
				Action: func(cCtx *cli.Context) error {
					client, _, err := newClient(cCtx)
					if err != nil {
						return err
					}
					to, err := interfaces.ParseAddress(cCtx.String("to"))
					if err != nil {
						return err
					}
					tokenID, err := client.Mint(cCtx.Context, to, cCtx.String("project-id"), cCtx.String("content-pointer"))
					if err != nil {
						return err
					}
					return printJSON(map[string]interfaces.TokenID{"token_id": tokenID})
				},
			},
			{
				Name:  "transfer",
				Usage: "Transfer a token (owner only)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Usage: "current owner (defaults to the signer)"},
					&cli.StringFlag{Name: "to", Required: true, Usage: "new owner"},
					tokenIDFlag,
				},
				Action: func(cCtx *cli.Context) error {
					client, signer, err := newClient(cCtx)
					if err != nil {
						return err
					}
					from := signer.Address()
					if raw := cCtx.String("from"); raw != "" {
						if from, err = interfaces.ParseAddress(raw); err != nil {
							return err
						}
					}
					to, err := interfaces.ParseAddress(cCtx.String("to"))
					if err != nil {
						return err
					}
					tokenID := interfaces.TokenID(cCtx.Uint64(tokenIDFlag.Name))
					return client.Transfer(cCtx.Context, from, to, tokenID)
				},
			},
			{
				Name:  "owner",
				Usage: "Print the owner of a token",
				Flags: []cli.Flag{tokenIDFlag},
				Action: func(cCtx *cli.Context) error {
					client, _, err := newClient(cCtx)
					if err != nil {
						return err
					}
					owner, err := client.OwnerOf(cCtx.Context, interfaces.TokenID(cCtx.Uint64(tokenIDFlag.Name)))
					if err != nil {
						return err
					}
					return printJSON(map[string]string{"owner": owner.Hex()})
				},
			},
			{
				Name:  "metadata",
				Usage: "Print the metadata of a token",
				Flags: []cli.Flag{tokenIDFlag},
				Action: func(cCtx *cli.Context) error {
					client, _, err := newClient(cCtx)
					if err != nil {
						return err
					}
					meta, err := client.GetMetadata(cCtx.Context, interfaces.TokenID(cCtx.Uint64(tokenIDFlag.Name)))
					if err != nil {
						return err
					}
					return printJSON(meta)
				},
			},
			{
				Name:  "version",
				Usage: "Print the registry version",
				Action: func(cCtx *cli.Context) error {
					client, _, err := newClient(cCtx)
					if err != nil {
						return err
					}
					version, err := client.Version(cCtx.Context)
					if err != nil {
						return err
					}
					return printJSON(map[string]string{"version": version})
				},
			},
			{
				Name:  "export",
				Usage: "Export a project bundle to content storage, optionally minting it",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "bundle", Required: true, Usage: "path to a project bundle JSON file"},
					&cli.StringFlag{Name: "mint-to", Usage: "mint the exported project to this address (signer must be admin)"},
				},
				Action: func(cCtx *cli.Context) error {
					client, _, err := newClient(cCtx)
					if err != nil {
						return err
					}

					data, err := os.ReadFile(cCtx.String("bundle"))
					if err != nil {
						return err
					}
					var bundle storage.ProjectBundle
					if err := json.Unmarshal(data, &bundle); err != nil {
						return fmt.Errorf("invalid bundle file: %w", err)
					}

					pointer, err := client.ExportProject(cCtx.Context, &bundle)
					if err != nil {
						return err
					}
					result := map[string]any{"content_pointer": pointer}

					if raw := cCtx.String("mint-to"); raw != "" {
						to, err := interfaces.ParseAddress(raw)
						if err != nil {
							return err
						}
						meta := bundle.Metadata(pointer)
						tokenID, err := client.Mint(cCtx.Context, to, meta.ProjectID, meta.ContentPointer)
						if err != nil {
							return fmt.Errorf("exported as %s but mint failed: %w", pointer, err)
						}
						result["token_id"] = tokenID
					}
					return printJSON(result)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newClient(cCtx *cli.Context) (*clients.RegistryClient, *auth.Signer, error) {
	signer, err := flags.LoadSigner(cCtx)
	if err != nil {
		return nil, nil, err
	}
	return clients.NewRegistryClient(cCtx.String(flags.ServerURLFlag.Name), signer), signer, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
