// Package atlas reads sprite sheet description documents into a catalog of
// sheets and sprites.
//
// The documents always have the form:
//
//	<images>
//	  <sheet name="tiles" source="tiles.png">
//	    <sprite name="grass" bounds="0,0,16,16"/>
//	  </sheet>
//	</images>
//
// Sheets and sprites are created by a Factory supplied by the caller, so the
// catalog can hold any implementation (see the imagesheet package for one that
// decodes images). Both may declare extra attributes through the Extender
// interface; the parser copies the values it finds on the tag and hands them
// over before the resource is stored.
//
// Malformed elements never abort a load. They are skipped and reported as
// Diagnostics, both to the configured Sink and in the slice returned by Load.
// Only a document that is not well-formed XML, or a reader that fails, makes
// Load return an error.
package atlas
