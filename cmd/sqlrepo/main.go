// Command sqlrepo generates SQL repositories from declarative models.
//
//	sqlrepo generate [--watch]
//	sqlrepo describe [--format json|yaml|msgpack]
package main

import (
	"os"

	"github.com/syssam/sqlrepo/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
