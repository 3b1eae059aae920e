package main

import (
	"log"
	"os"
	"text/template"
)

type Params struct {
	Role      string // api or worker
	Binary    string
	ExtraArgs string
}

func main() {

	if len(os.Args) < 2 {
		log.Fatal("Usage: ./generate_units (api|worker)")
		return
	}

	params := Params{}

	switch os.Args[1] {
	case "api":
		params.Role = os.Args[1]
		params.Binary = "blocks-ci"
		params.ExtraArgs = "--status-listen :9100"
	case "worker":
		params.Role = os.Args[1]
		params.Binary = "worker"
	default:
		log.Fatalf("Invalid argument for api|worker: %v", os.Args[1])
	}

	templateFile := "../templates/blocks_ci.service.template"

	templateBytes, err := os.ReadFile(templateFile)
	if err != nil {
		panic(err)
	}

	tmpl, err := template.New("systemd").Parse(string(templateBytes))
	if err != nil {
		panic(err)
	}
	err = tmpl.Execute(os.Stdout, params)
	if err != nil {
		panic(err)
	}

}
