// Package sqlexec runs synthesized repository methods directly, without
// generating code. Arguments and results are dynamic: composite values
// are maps keyed by field name.
//
//	g, err := gen.NewGraph(ctx, cfg, model)
//	if err != nil {
//	    return err
//	}
//	ex := sqlexec.New(drv)
//	item, err := ex.Call(ctx, g.Repos[0], "findById", sqlexec.Args{"id": id})
//
// Results follow the same rules as generated code: a single-row method
// fails with sqlrepo.ErrNotFound when no row matches (or returns nil when
// its result is nullable) and with sqlrepo.ErrNotSingular on a second
// row; an optimistic save or delete fails with an
// *sqlrepo.OptimisticLockError when a version conflict leaves rows
// untouched. Driver errors caused by constraint violations are returned
// as sqlrepo.ConstraintError.
package sqlexec
