package controllers

import _ "embed"

//go:embed photos.html
var photosPage []byte
