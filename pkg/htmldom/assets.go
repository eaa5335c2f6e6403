package htmldom

import "embed"

//go:embed assets/style.css
var assetsFS embed.FS

// bundledCSS returns the fixed stylesheet embedded into every rendered
// documentation page's <style> block.
func bundledCSS() string {
	b, err := assetsFS.ReadFile("assets/style.css")
	if err != nil {
		// The file is embedded at build time; a read failure here means the
		// embed directive itself is broken, not a runtime condition.
		panic(err)
	}
	return string(b)
}
