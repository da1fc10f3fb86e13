package main

import app "blacktask/internal/app"

func main() {
	app.Run()
}
