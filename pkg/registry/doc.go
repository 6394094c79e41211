// Package registry provides a generic, ordered registry with aliases.
// Registration order is preserved by List, so a registry can describe a
// sequence such as the installation chain.
package registry
