// Package view is the component model used to compose grapesite pages.
//
// Components are plain functions returning *html.Node trees built with El and
// Text. Rendering is pure: every call constructs fresh nodes, so rendering the
// same inputs twice produces byte-identical output. Components declare the
// stylesheets and assets they depend on through a Scope while they render;
// the document shell turns the collected stylesheets into <link> elements and
// the build copies the collected assets.
package view
