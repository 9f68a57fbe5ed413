// Package application contém os casos de uso do cache de página:
// startup síncrono, leitura do buffer live e regeneração em background.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: RefreshService.Serve() devolve o conteúdo live e dispara, no máximo,
// uma regeneração em paralelo.
package application
