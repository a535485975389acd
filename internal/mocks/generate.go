package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/session --output domain/session --outpkg sessionmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name PoolRepository --dir ../domain/player --output domain/player --outpkg playermock --filename pool_repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/submission --output domain/submission --outpkg submissionmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/leaderboard --output domain/leaderboard --outpkg leaderboardmock --filename repository_mock.go
