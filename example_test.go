package settings_test

import (
	"errors"
	"fmt"

	"github.com/ygrebnov/settings"
	"github.com/ygrebnov/settings/storage"
)

func ExampleManager() {
	st, err := storage.Open() // memory only
	if err != nil {
		panic(err)
	}
	m, err := settings.New(st)
	if err != nil {
		panic(err)
	}

	alpha, _ := m.CreateRange("transparency", 95, 50, 100, settings.WithParent("window"))
	theme, _ := m.CreateOption("window_theme", "system", []string{"system", "light", "dark"})

	_ = alpha.Set(150)
	fmt.Println(alpha.Value())

	err = theme.Set("neon")
	fmt.Println(errors.Is(err, settings.ErrValidation), theme.Value())

	fmt.Println(m.Parents())
	// Output:
	// 100
	// true system
	// [window ]
}
