package main

import (
	"log"
	"os"
	"text/template"
)

type Params struct {
	PythonVersion string // 2.7 or 3.4
	Miniconda     string // miniconda installer name for the python version
}

func main() {

	if len(os.Args) < 2 {
		log.Fatal("Usage: ./generate_dockerfiles (2.7|3.4)")
		return
	}

	params := Params{}

	switch os.Args[1] {
	case "2.7":
		params.PythonVersion = os.Args[1]
		params.Miniconda = "Miniconda-latest-Linux-x86_64.sh"
	case "3.4":
		params.PythonVersion = os.Args[1]
		params.Miniconda = "Miniconda3-latest-Linux-x86_64.sh"
	default:
		log.Fatalf("Invalid argument for 2.7|3.4: %v", os.Args[1])
	}

	templateFile := "../templates/Dockerfile.template"

	templateBytes, err := os.ReadFile(templateFile)
	if err != nil {
		panic(err)
	}

	tmpl, err := template.New("docker").Parse(string(templateBytes))
	if err != nil {
		panic(err)
	}
	err = tmpl.Execute(os.Stdout, params)
	if err != nil {
		panic(err)
	}

}
