// Package shared holds helpers used by more than one package that belong
// to no single layer.
//
// The testutil subpackage captures slog output in tests:
//
//	logger, handler := testutil.NewTestLogger(t)
//	svc := services.NewMatchingService(cfg, layers, store, nil, nil, logger)
//	...
//	testutil.AssertLogContains(t, handler, slog.LevelInfo, "correspondence built")
//	testutil.AssertLogAttr(t, handler, "by_nearest", int64(1))
package shared
