package main

import "github.com/faroucksc/sms-sync/cmd/syncer/cmd"

func main() {
	cmd.Execute()
}
