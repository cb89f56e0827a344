package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/ovaskain/ostinato/grammar"
	"github.com/ovaskain/ostinato/version"
)

// ostinato-expand prints the derivation of a grammar step by step, which is
// handy when a grammar does not converge the way its author expects.

func main() {
	steps := flag.Int("n", 4, "Number of rewrite steps to print.")
	seed := flag.Uint64("seed", 0, "Seed for random production selection; 0 picks the first matching production deterministically.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}
	retval := 0
	for _, param := range flag.Args() {
		if err := process(param, *steps, *seed); err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func process(filename string, steps int, seed uint64) error {
	inputBytes, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("could not read file %v: %v", filename, err)
	}
	g, err := grammar.Parse(string(inputBytes))
	if err != nil {
		return fmt.Errorf("could not parse grammar: %v", err)
	}
	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewPCG(seed, seed))
	}
	current := grammar.MusicString{grammar.Simple(grammar.NT(g.Start))}
	fmt.Printf("0: %s\n", current)
	for i := 1; i <= steps; i++ {
		current = current.Rewrite(&g, rng)
		fmt.Printf("%d: %s\n", i, current)
	}
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Prints the derivation of a grammar file one rewrite step at a time.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
