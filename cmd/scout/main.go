package main

import (
	"context"
	"valorant-scout/cmd/scout/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
