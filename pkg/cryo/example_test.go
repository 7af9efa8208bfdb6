package cryo_test

import (
	"fmt"

	"github.com/halvik/cryo/pkg/cryo"
	"github.com/halvik/cryo/vm"
)

// A cyclic table survives the round trip with its identity intact.
func ExamplePersist() {
	s := vm.New()
	world := vm.NewTable()
	world.RawSet("name", "aurora")
	world.RawSet("self", world)

	data, err := cryo.Persist(s, world, cryo.DumpOptions{})
	if err != nil {
		panic(err)
	}

	revived, err := cryo.Unpersist(vm.New(), data, cryo.OpenOptions{})
	if err != nil {
		panic(err)
	}
	t := revived.(*vm.Table)
	fmt.Println(t.RawGet("name"))
	fmt.Println(t.RawGet("self") == revived)
	// Output:
	// aurora
	// true
}

// Native functions travel through the permanents table: the writer
// replaces them with a key, the reader maps the key back to a live
// function.
func ExamplePersist_permanents() {
	greet := vm.NewHostFunc("greet", func(_ *vm.State, _ *vm.Closure, _ []vm.Value) ([]vm.Value, error) {
		return []vm.Value{"hi"}, nil
	})

	wperms := vm.NewTable()
	wperms.RawSet(greet, "greet")

	s := vm.New()
	data, err := cryo.Persist(s, greet, cryo.DumpOptions{Perms: wperms})
	if err != nil {
		panic(err)
	}

	rperms := vm.NewTable()
	rperms.RawSet("greet", greet)
	revived, err := cryo.Unpersist(vm.New(), data, cryo.OpenOptions{Perms: rperms})
	if err != nil {
		panic(err)
	}
	fmt.Println(revived == vm.Value(greet))
	// Output:
	// true
}
