// Package main renders the spotigo architecture diagrams into ./go-diagrams.
//
// The output is a set of graphviz .dot files; render them with
//
//	cd go-diagrams && dot -Tpng architecture.dot > architecture.png
package main

import (
	"fmt"

	"github.com/blushft/go-diagrams/diagram"
	"github.com/blushft/go-diagrams/nodes/programming"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := generateArchitectureDiagram(); err != nil {
		log.Fatal(err)
	}
	if err := generateComponentDiagram(); err != nil {
		log.Fatal(err)
	}
	log.Info("Diagrams written to go-diagrams/")
}

// generateArchitectureDiagram shows how a command reaches the Web API.
func generateArchitectureDiagram() error {
	d, err := diagram.New(diagram.Filename("architecture"), diagram.Label("spotigo architecture"), diagram.Direction("LR"))
	if err != nil {
		return fmt.Errorf("failed to create architecture diagram: %w", err)
	}

	cli := programming.Language.Go(diagram.NodeLabel("spotigo CLI"))
	config := programming.Language.Go(diagram.NodeLabel("pkg/config"))
	services := programming.Language.Go(diagram.NodeLabel("internal services"))
	library := programming.Language.Go(diagram.NodeLabel("pkg/spotify"))
	store := programming.Language.Go(diagram.NodeLabel("credential store"))
	api := programming.Language.Go(diagram.NodeLabel("Spotify Web API"))

	d.Connect(cli, config, diagram.Forward()).
		Connect(cli, services, diagram.Forward()).
		Connect(services, library, diagram.Forward()).
		Connect(library, store, diagram.Forward()).
		Connect(library, api, diagram.Forward())

	if err := d.Render(); err != nil {
		return fmt.Errorf("failed to render architecture diagram: %w", err)
	}
	return nil
}

// generateComponentDiagram shows the packages behind each layer.
func generateComponentDiagram() error {
	d, err := diagram.New(diagram.Filename("components"), diagram.Label("spotigo components"), diagram.Direction("TB"))
	if err != nil {
		return fmt.Errorf("failed to create component diagram: %w", err)
	}

	root := programming.Language.Go(diagram.NodeLabel("cmd/spotigo"))
	playlist := programming.Language.Go(diagram.NodeLabel("internal/playlist"))
	duplicate := programming.Language.Go(diagram.NodeLabel("internal/duplicate"))
	search := programming.Language.Go(diagram.NodeLabel("internal/search"))
	service := programming.Language.Go(diagram.NodeLabel("internal/spotify"))
	client := programming.Language.Go(diagram.NodeLabel("spotify.Client"))
	entities := programming.Language.Go(diagram.NodeLabel("entities + pages"))
	tokens := programming.Language.Go(diagram.NodeLabel("oauth2 tokens"))
	sqlite := programming.Language.Go(diagram.NodeLabel("sqlite"))
	file := programming.Language.Go(diagram.NodeLabel("json file"))
	memory := programming.Language.Go(diagram.NodeLabel("memory"))

	d.Group(diagram.NewGroup("workflows").Label("Workflows").Add(playlist, duplicate, search))
	d.Group(diagram.NewGroup("library").Label("pkg/spotify").Add(client, entities, tokens))
	d.Group(diagram.NewGroup("store").Label("internal/store").Add(sqlite, file, memory))

	d.Connect(root, playlist, diagram.Forward()).
		Connect(root, search, diagram.Forward()).
		Connect(playlist, duplicate, diagram.Forward()).
		Connect(playlist, service, diagram.Forward()).
		Connect(duplicate, service, diagram.Forward()).
		Connect(search, service, diagram.Forward()).
		Connect(service, client, diagram.Forward()).
		Connect(client, entities, diagram.Forward()).
		Connect(client, tokens, diagram.Forward()).
		Connect(tokens, sqlite, diagram.Forward()).
		Connect(tokens, file, diagram.Forward()).
		Connect(tokens, memory, diagram.Forward())

	if err := d.Render(); err != nil {
		return fmt.Errorf("failed to render component diagram: %w", err)
	}
	return nil
}
