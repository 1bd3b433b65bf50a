// Command dmn shows, evaluates and serves decision tables.
//
//	dmn show -f decisions.yaml
//	dmn eval -f decisions.yaml --id age-category --var age=16
//	dmn serve --dir ./decisions --addr :8080
package main

func main() {
	Execute()
}
