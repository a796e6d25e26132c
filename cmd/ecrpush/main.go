package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	var app = &cli.App{
		Name:     "ecrpush",
		Usage:    "Push local container images to Amazon ECR",
		Commands: []*cli.Command{pushCommand, versionCommand},
	}
	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
