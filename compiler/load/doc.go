// Package load reads the type model of a set of repositories from YAML
// or JSON files.
//
// A file declares classes and repositories under one package:
//
//	package: example.com/shop
//	classes:
//	  - name: Item
//	    annotations: {Table: {name: items}}
//	    fields:
//	      - {name: id, type: String, annotations: {Id: {}}}
//	      - {name: note, type: 'String?'}
//	repositories:
//	  - name: ItemRepository
//	    entity: Item
//	    annotations: {Repository: {database: ShopDB}}
//	    functions:
//	      - {name: findById, params: [{name: id, type: String}], returns: 'Item?'}
//
// Nullable types end in '?', which YAML does not accept unquoted inside
// a flow mapping. Quote them there, or use block style.
package load
