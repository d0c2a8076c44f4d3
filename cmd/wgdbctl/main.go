// Command wgdbctl creates, inspects and exercises database segments.
package main

func main() {
	execute()
}
