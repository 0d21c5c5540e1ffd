package main

import (
	"github.com/m4xw311/shortbot/deploy"
)

func main() {
	deploy.Execute()
}
