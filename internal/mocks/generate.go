package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/lottery --output domain/lottery --outpkg lotterymock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/client --output domain/client --outpkg clientmock --filename repository_mock.go
