package main

import "github.com/QuickTabNavigator/QuickTabNavigator/cmd"

func main() {
	cmd.Execute()
}
