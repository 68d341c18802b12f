// Package build implements the grapesite generation pipeline.
//
// The Generator runs a fixed sequence of stages (prepare_output,
// discover_content, generate_manifest, compile_styles, render_pages,
// copy_assets, verify_links, write_report) over a shared buildState. Each
// stage is timed and recorded in the Report; the first failing stage stops
// the build. Cancellation is checked between stages.
package build
