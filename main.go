package main

import "airflownet/cmd"

func main() {
	cmd.Execute()
}
