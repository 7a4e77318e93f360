// Package sqlrepo holds the runtime contract shared by generated
// repositories and the sqlexec executor: the errors methods return, page
// requests and results, sort orders, IN-list rendering and retries on
// optimistic lock failures.
//
// A generated method reading a single row returns ErrNotFound when the
// query yields no row, unless its result is nullable, and ErrNotSingular
// when it yields a second one:
//
//	item, err := repo.FindByID(ctx, id)
//	if sqlrepo.IsNotFound(err) {
//		...
//	}
//
// Saves and deletes of versioned entities report a concurrent update as
// an OptimisticLockError, which Retry retries:
//
//	err := sqlrepo.Retry(ctx, sqlrepo.DefaultRetries, func(ctx context.Context) error {
//		item, err := repo.FindByID(ctx, id)
//		if err != nil {
//			return err
//		}
//		item.Count++
//		return repo.Save(ctx, item)
//	})
package sqlrepo
