package main

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"ecrpush/engine"
	"ecrpush/inputs"
	"ecrpush/progress"
	"ecrpush/refs"
	"ecrpush/registry"
)

//go:embed static/push-usage.txt
var pushUsageText string

var pushCommand = &cli.Command{
	Name:      "push",
	Usage:     "Pushes a local image to ECR, creating the repository if needed",
	UsageText: pushUsageText,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "profile",
			Aliases: []string{"p"},
			Usage:   "AWS profile to authenticate with",
		},
		&cli.StringFlag{
			Name:    "account-number",
			Aliases: []string{"a"},
			Usage:   "AWS account number owning the registry",
		},
		&cli.StringFlag{
			Name:    "image-name",
			Aliases: []string{"n"},
			Usage:   "Name of the local image to push",
		},
		&cli.StringFlag{
			Name:    "image-tag",
			Aliases: []string{"t"},
			Usage:   "Tag of the local image to push",
		},
	},
	Action: func(c *cli.Context) error {
		in := inputs.Inputs{
			Profile:       c.String("profile"),
			AccountNumber: c.String("account-number"),
			ImageName:     c.String("image-name"),
			ImageTag:      c.String("image-tag"),
		}
		if err := in.Validate(); err != nil {
			return err
		}

		session, err := registry.NewSession(c.Context, in.Profile)
		if err != nil {
			return err
		}
		repository, err := session.EnsureRepository(c.Context, in.ImageName)
		if err != nil {
			return err
		}
		auth, err := session.Authorization(c.Context, in.AccountNumber)
		if err != nil {
			return err
		}
		password, err := registry.DecodePassword(auth.Token)
		if err != nil {
			return err
		}

		local, remote := refs.Derive(in.ImageName, in.ImageTag, auth.Endpoint)
		logrus.Debugf("pushing %s to repository %s", local, repository)

		eng, err := engine.New()
		if err != nil {
			return err
		}
		if err := eng.Login(c.Context, registry.Username, password, auth.Endpoint); err != nil {
			return err
		}
		tagged := fmt.Sprintf("%s:%s", remote, in.ImageTag)
		if err := eng.Tag(c.Context, local, tagged); err != nil {
			return err
		}

		fmt.Println("Pushing", local, "to", tagged)
		events, err := eng.Push(c.Context, tagged, registry.Username, password, auth.Endpoint)
		if err != nil {
			return err
		}
		defer events.Close()
		return progress.NewMeter(os.Stdout, remote, in.ImageTag).Consume(events)
	},
}
