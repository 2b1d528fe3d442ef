package main

import (
	"log"

	"github.com/spf13/cobra"

	pojogencli "github.com/harrybrwn/pojogen/cmd/pojogen/cli"
)

func main() {
	root := pojogencli.NewPojoGenCmd(
		&cobra.Command{
			Use:          "pojogen [type uri...]",
			SilenceUsage: true,
		},
		&pojogencli.Flags{
			OutDir:   "./src/main/java/",
			LogLevel: "info",
		},
	)
	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}
