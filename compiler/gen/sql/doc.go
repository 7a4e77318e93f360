// Package sql renders a synthesized repository graph as a Go package
// using the Jennifer code generation library.
//
// # Generated Output Structure
//
// The generator produces the following files in the target directory:
//
//	<target>/
//	├── model.go                    # Entity structs, enums and row scanners
//	├── my_class_repository.go      # One file per repository
//	├── report_repository.go
//	├── shop_db.go                  # One file per database
//	└── report_db.go
//
// Every repository renders as an interface, an unexported
// implementation over a dialect.ExecQuerier and a constructor. Each
// method documents the SQL it runs:
//
//	type MyClassRepository interface {
//		// FindByID runs the derived method findById:
//		//
//		//	SELECT "id", "name", ...
//		//	FROM my_class
//		//	WHERE "id" = ?
//		//	LIMIT 2
//		FindByID(ctx context.Context, id string) (*MyClass, error)
//	}
//
// A database wrapper groups the repositories that share a database and
// runs functions inside a transaction:
//
//	db := NewShopDB(drv)
//	err := db.Transaction(ctx, func(ctx context.Context, tx *ShopDBTx) error {
//		return tx.MyClassRepository.Save(ctx, item)
//	})
//
// # Usage
//
//	g, err := gen.NewGraph(ctx, cfg, model)
//	if err != nil {
//		return err
//	}
//	return sql.Generate(ctx, g)
//
// Files are formatted with golang.org/x/tools/imports and written
// concurrently, bounded by Config.Workers.
package sql
